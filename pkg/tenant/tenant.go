package tenant

// Tenant is an isolated customer organization. Every repository query in the
// application filters by the tenant id resolved from the request.
type Tenant struct {
	Id       int
	Uid      string
	Name     string
	Currency string
	// BillableUsers is reported to the payment gateway when a subscription
	// preference is created.
	BillableUsers int
}
