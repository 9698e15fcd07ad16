package event_bus

// BudgetCategoryCreated is published after a new budget category is stored.
type BudgetCategoryCreated struct {
	Id   int64
	Name string
}

// DocumentUploaded is published after a document upload is stored and its
// metadata persisted.
type DocumentUploaded struct {
	Id       string
	FileName string
	Size     int64
}

// PaymentPreferenceCreated is published after a checkout preference was
// created with the payment provider.
type PaymentPreferenceCreated struct {
	PreferenceId string
	Title        string
	Amount       float64
}
