package domain

// Role is the closed set of actor roles in the approval workflow.
type Role string

const (
	RoleUser       Role = "user"
	RoleAccountant Role = "accountant"
	RoleAdmin      Role = "admin"
)

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAccountant, RoleAdmin:
		return true
	}
	return false
}

// CanEditRequest decides whether an actor with this role may edit the request
// in its current state. isParticipant must reflect membership in the request's
// participant set at the time of the check.
//
// Admins edit anything. A paid request is frozen for everyone else.
// Accountants edit any unpaid request. Base users edit only draft requests
// they participate in.
func (r Role) CanEditRequest(req *PaymentRequest, isParticipant bool) bool {
	if r == RoleAdmin {
		return true
	}
	if req.Paid {
		return false
	}
	if r == RoleAccountant {
		return true
	}
	if !req.ReadyForPayment {
		return isParticipant
	}
	return false
}

// CanChangeStatus decides whether an actor with this role may flip the
// ready_for_payment or paid flags of the request. The gate is evaluated
// separately from the general edit permission on every status-changing write.
func (r Role) CanChangeStatus(req *PaymentRequest, isParticipant bool) bool {
	if r == RoleUser {
		return false
	}
	return r.CanEditRequest(req, isParticipant)
}

// CanViewRequest decides read access to a request.
func (r Role) CanViewRequest(isParticipant bool) bool {
	if r == RoleAdmin || r == RoleAccountant {
		return true
	}
	return isParticipant
}

// CanSetCommission reports whether the role may supply commission values.
// Base users cannot; their input is discarded rather than rejected.
func (r Role) CanSetCommission() bool {
	return r != RoleUser
}
