package flow

// State identifies a step in a user's conversation.
type State string

const (
	// StateMainMenu is the entry and resting state of every conversation.
	StateMainMenu State = "MAIN_MENU"
	// StateSelectingService means the user is picking a catalog entry.
	StateSelectingService State = "SELECTING_SERVICE"
	// StateSelectingPayment means the user is picking a payment method.
	StateSelectingPayment State = "SELECTING_PAYMENT"
	// StateAwaitingProof means the user owes a payment proof attachment.
	StateAwaitingProof State = "AWAITING_PROOF"
	// StateInOperatorChat relays every text message to the operator channel.
	StateInOperatorChat State = "IN_OPERATOR_CHAT"

	// Operator-only input states. Each follows the same shape: await one
	// input, validate, apply or re-prompt, then return to the main menu.
	StateAwaitingOperatorAddID    State = "AWAITING_OPERATOR_ADD_ID"
	StateAwaitingOperatorRemoveID State = "AWAITING_OPERATOR_REMOVE_ID"
	StateAwaitingBroadcast        State = "AWAITING_BROADCAST"
	StateAwaitingServiceInput     State = "AWAITING_SERVICE_INPUT"
	StateAwaitingServiceDeleteID  State = "AWAITING_SERVICE_DELETE_ID"
	StateAwaitingServiceToggleID  State = "AWAITING_SERVICE_TOGGLE_ID"
	// StateAwaitingRejectReason finalizes a rejection once the operator
	// provides the free-text reason.
	StateAwaitingRejectReason State = "AWAITING_REJECT_REASON"
)
