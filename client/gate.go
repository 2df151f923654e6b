package client

// Decision classifies a catalog entry for the current session. It is a UX
// classification driving navigation, not a security boundary: authoritative
// enforcement happens server-side on every content request.
type Decision int

const (
	// Visible means the entry can be opened.
	Visible Decision = iota

	// LockedLogin means the entry is premium and the caller is anonymous;
	// the recovery action is signing in.
	LockedLogin

	// LockedUpgrade means the caller is signed in without a premium plan;
	// the recovery action is upgrading.
	LockedUpgrade
)

func (d Decision) String() string {
	switch d {
	case Visible:
		return "visible"
	case LockedLogin:
		return "locked_login"
	case LockedUpgrade:
		return "locked_upgrade"
	default:
		return "unknown"
	}
}

// Classify decides how a catalog entry presents to the given session.
func Classify(session Session, item ContentItem) Decision {
	if !item.PremiumOnly {
		return Visible
	}
	if session.IsAnonymous() {
		return LockedLogin
	}
	if !session.IsPremium() {
		return LockedUpgrade
	}
	return Visible
}
