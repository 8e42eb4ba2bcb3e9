// Package app holds the dashboard's route table.
package app

import "github.com/ledgerdash/ledgerdash/pkg/router"

// Views rendered by the dashboard.
const (
	ViewDashboard          router.View = "Dashboard"
	ViewAccountDetail      router.View = "AccountDetail"
	ViewAccountManagement  router.View = "AccountManagement"
	ViewCategoryManagement router.View = "CategoryManagement"
)

// Route names.
const (
	RouteDashboard          = "Dashboard"
	RouteAccountDetail      = "AccountDetail"
	RouteAccountManagement  = "AccountManagement"
	RouteCategoryManagement = "CategoryManagement"
)

// Routes returns the dashboard's route definitions in registration order.
func Routes() []router.Route {
	return []router.Route{
		{Path: "/", Name: RouteDashboard, View: ViewDashboard},
		{Path: "/account/:id", Name: RouteAccountDetail, View: ViewAccountDetail, PropsFromParams: true},
		{Path: "/accounts", Name: RouteAccountManagement, View: ViewAccountManagement},
		{Path: "/categories", Name: RouteCategoryManagement, View: ViewCategoryManagement},
	}
}

// Table builds the dashboard's route table. The definitions are static, so
// a configuration error here is a programming error and panics.
func Table() *router.Table {
	return router.MustNew(Routes()...)
}
