package models

import (
	"fmt"

	id "lockme/pkg/domain"
)

// View identifies an admin screen. TribeID is only meaningful for ViewTribeDetail.
type View struct {
	Kind    ViewKind
	TribeID id.TribeID
}

// DashboardView, UsersView and TribesView are the parameterless screens.
var (
	DashboardView = View{Kind: ViewDashboard}
	UsersView     = View{Kind: ViewUsers}
	TribesView    = View{Kind: ViewTribes}
)

// TribeDetailView returns the detail screen for one tribe.
func TribeDetailView(tribeID id.TribeID) View {
	return View{Kind: ViewTribeDetail, TribeID: tribeID}
}

// Key is the stable identity of a view, used to scope request sequences.
func (v View) Key() string {
	if v.Kind == ViewTribeDetail {
		return fmt.Sprintf("%s:%s", v.Kind, v.TribeID)
	}
	return string(v.Kind)
}

func (v View) String() string { return v.Key() }
