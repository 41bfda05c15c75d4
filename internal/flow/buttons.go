package flow

// Callback keys routed back into the engine as button events. Keys with a
// payload carry it after the transport's unique/payload separator.
const (
	BtnMainMenu        = "main_menu"
	BtnPriceList       = "price_list"
	BtnMyAccount       = "my_account"
	BtnOrderStart      = "order_service"
	BtnContactOperator = "contact_operator"

	// BtnSelectService carries a service ID payload.
	BtnSelectService = "select_service"
	// BtnPay carries a currency code payload.
	BtnPay         = "pay"
	BtnCancelOrder = "cancel_order"

	BtnAdminPanel    = "admin_panel"
	BtnAdminStats    = "admin_stats"
	BtnAdminUsers    = "admin_users"
	BtnAdminOrders   = "admin_orders"
	BtnAdminPending  = "admin_pending"
	BtnAdminServices = "admin_services"
	BtnAdminRoster   = "admin_operators"
	BtnBroadcast     = "admin_broadcast"

	BtnOperatorAdd    = "operator_add"
	BtnOperatorRemove = "operator_remove"
	BtnServiceAdd     = "service_add"
	BtnServiceDelete  = "service_delete"
	BtnServiceToggle  = "service_toggle"

	// BtnApprove and BtnReject carry an order ID payload.
	BtnApprove = "approve_order"
	BtnReject  = "reject_order"
)
