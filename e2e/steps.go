package e2e

import (
	"github.com/cucumber/godog"

	"lockme/e2e/steps/admin"
	"lockme/e2e/steps/common"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	admin.RegisterSteps(ctx, tc)
}
