package model

// PaymentMethod is the payment option picked in the final wizard stage.
// Every method currently behaves the same way: picking one starts account
// creation and nothing about the method is sent to the account service.
type PaymentMethod string

const (
	PaymentZelle PaymentMethod = "zelle"
	PaymentVenmo PaymentMethod = "venmo"
)

var PaymentMethods = []PaymentMethod{PaymentZelle, PaymentVenmo}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentZelle, PaymentVenmo:
		return true
	}
	return false
}
