// Package notify implements the subscription notification pipeline:
// template resolution with list-level overrides, merge context assembly and
// the dispatcher that hands rendered messages to the outbound mail sink.
package notify

// Kind identifies one notification message type.
type Kind string

const (
	KindSubscriptionConfirmed   Kind = "subscription-confirmed"
	KindAlreadySubscribed       Kind = "already-subscribed"
	KindConfirmAddressChange    Kind = "confirm-address-change"
	KindConfirmSubscription     Kind = "confirm-subscription"
	KindConfirmUnsubscription   Kind = "confirm-unsubscription"
	KindUnsubscriptionConfirmed Kind = "unsubscription-confirmed"
)

// subjectPhrases holds the fixed subject phrase per kind; the final subject
// is "<list name>: <phrase>".
var subjectPhrases = map[Kind]string{
	KindSubscriptionConfirmed:   "Subscription Confirmed",
	KindAlreadySubscribed:       "Email Address Already Registered",
	KindConfirmAddressChange:    "Please Confirm Email Change in Subscription",
	KindConfirmSubscription:     "Please Confirm Subscription",
	KindConfirmUnsubscription:   "Please Confirm Unsubscription",
	KindUnsubscriptionConfirmed: "Unsubscribe Confirmed",
}

// alwaysSend marks the confirmation-type kinds that ignore the list-wide
// disableConfirmations flag: without them the double-opt-in flow would
// deadlock.
var alwaysSend = map[Kind]bool{
	KindAlreadySubscribed:     true,
	KindConfirmAddressChange:  true,
	KindConfirmSubscription:   true,
	KindConfirmUnsubscription: true,
}

// Valid reports whether k is a known notification kind.
func Valid(k Kind) bool {
	_, ok := subjectPhrases[k]
	return ok
}

// Kinds returns every notification kind.
func Kinds() []Kind {
	return []Kind{
		KindSubscriptionConfirmed,
		KindAlreadySubscribed,
		KindConfirmAddressChange,
		KindConfirmSubscription,
		KindConfirmUnsubscription,
		KindUnsubscriptionConfirmed,
	}
}
