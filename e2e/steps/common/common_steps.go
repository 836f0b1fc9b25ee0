package common

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	ResponseContains(field string) bool
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	MintIdentityToken(email string) (string, error)
	MintForeignIdentityToken(email string) (string, error)
	GetAccessToken() string
	SetAccessToken(token string)
}

// RegisterSteps registers the raw HTTP steps against the backend API
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	// Background steps
	ctx.Step(`^the LockMe backend is running$`, steps.backendIsRunning)

	// Request steps
	ctx.Step(`^I exchange a Google token for "([^"]*)"$`, steps.exchangeGoogleToken)
	ctx.Step(`^I exchange a forged Google token for "([^"]*)"$`, steps.exchangeForgedGoogleToken)
	ctx.Step(`^I POST to "([^"]*)" with empty body$`, steps.postWithEmptyBody)
	ctx.Step(`^I save the access token$`, steps.saveAccessToken)
	ctx.Step(`^I GET "([^"]*)" with the access token$`, steps.getWithAccessToken)
	ctx.Step(`^I GET "([^"]*)" without authorization$`, steps.getWithoutAuth)
	ctx.Step(`^I GET "([^"]*)" with invalid token "([^"]*)"$`, steps.getWithInvalidToken)

	// Response assertion steps
	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, steps.responseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.responseFieldShouldEqual)
	ctx.Step(`^the response field "([^"]*)" should contain "([^"]*)"$`, steps.responseFieldShouldContain)
	ctx.Step(`^the response field "([^"]*)" should have (\d+) items?$`, steps.responseFieldShouldHaveItems)

	ctx.Step(`^log "([^"]*)"$`, steps.logMessage)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) backendIsRunning(ctx context.Context) error {
	return s.tc.GET("/health/ready", nil)
}

func (s *commonSteps) exchangeGoogleToken(ctx context.Context, email string) error {
	token, err := s.tc.MintIdentityToken(email)
	if err != nil {
		return err
	}
	return s.tc.POST("/auth/google", map[string]interface{}{"id_token": token})
}

func (s *commonSteps) exchangeForgedGoogleToken(ctx context.Context, email string) error {
	token, err := s.tc.MintForeignIdentityToken(email)
	if err != nil {
		return err
	}
	return s.tc.POST("/auth/google", map[string]interface{}{"id_token": token})
}

func (s *commonSteps) postWithEmptyBody(ctx context.Context, path string) error {
	return s.tc.POST(path, map[string]interface{}{})
}

func (s *commonSteps) saveAccessToken(ctx context.Context) error {
	token, err := s.tc.GetResponseField("access_token")
	if err != nil {
		return err
	}
	str, ok := token.(string)
	if !ok || str == "" {
		return fmt.Errorf("access_token is not a string: %v", token)
	}
	s.tc.SetAccessToken(str)
	return nil
}

func (s *commonSteps) getWithAccessToken(ctx context.Context, path string) error {
	return s.tc.GET(path, map[string]string{
		"Authorization": "Bearer " + s.tc.GetAccessToken(),
	})
}

func (s *commonSteps) getWithoutAuth(ctx context.Context, path string) error {
	return s.tc.GET(path, nil)
}

func (s *commonSteps) getWithInvalidToken(ctx context.Context, path, token string) error {
	return s.tc.GET(path, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

func (s *commonSteps) responseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	actualStatus := s.tc.GetLastResponseStatus()
	if actualStatus != expectedStatus {
		return fmt.Errorf("expected status %d but got %d", expectedStatus, actualStatus)
	}
	return nil
}

func (s *commonSteps) responseShouldContain(ctx context.Context, field string) error {
	if !s.tc.ResponseContains(field) {
		return fmt.Errorf("response does not contain field: %s\nResponse: %s", field, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *commonSteps) responseFieldShouldEqual(ctx context.Context, field, expectedValue string) error {
	actualValue, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(actualValue) != expectedValue {
		return fmt.Errorf("field %s: expected %s but got %v", field, expectedValue, actualValue)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldContain(ctx context.Context, field, expectedSubstring string) error {
	actualValue, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if !strings.Contains(fmt.Sprint(actualValue), expectedSubstring) {
		return fmt.Errorf("field %s: expected to contain %s but got %v", field, expectedSubstring, actualValue)
	}
	return nil
}

// responseFieldShouldHaveItems accepts a top-level array body when field is "."
func (s *commonSteps) responseFieldShouldHaveItems(ctx context.Context, field string, expected int) error {
	var items []interface{}
	if field == "." {
		if err := json.Unmarshal(s.tc.GetLastResponseBody(), &items); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	} else {
		value, err := s.tc.GetResponseField(field)
		if err != nil {
			return err
		}
		var ok bool
		if items, ok = value.([]interface{}); !ok {
			return fmt.Errorf("field %s is not an array: %v", field, value)
		}
	}
	if len(items) != expected {
		return fmt.Errorf("field %s: expected %d items but got %d", field, expected, len(items))
	}
	return nil
}

func (s *commonSteps) logMessage(ctx context.Context, message string) error {
	fmt.Println(message)
	return nil
}
