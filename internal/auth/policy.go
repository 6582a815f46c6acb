package auth

import "github.com/spec-kit/pos-frontend/internal/domain"

// Decision is the outcome of an access evaluation.
type Decision uint8

const (
	DecisionUnauthenticated Decision = iota
	DecisionAllow
	DecisionDenyToSelector
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionDenyToSelector:
		return "deny_to_selector"
	default:
		return "unauthenticated"
	}
}

// Evaluate decides whether identity may enter an area requiring the given role.
// A nil required role admits any authenticated principal. Rules apply in order
// and the admin override precedes every role comparison.
func Evaluate(identity *domain.Identity, required *domain.Role) Decision {
	if identity == nil {
		return DecisionUnauthenticated
	}
	if identity.Role == domain.RoleAdmin {
		return DecisionAllow
	}
	if required == nil {
		return DecisionAllow
	}
	if identity.Role.Known() && identity.Role == *required {
		return DecisionAllow
	}
	return DecisionDenyToSelector
}

// DefaultArea resolves where a principal with the given role lands.
func DefaultArea(role domain.Role) domain.Destination {
	switch role {
	case domain.RoleAdmin:
		return domain.DestinationAreaSelector
	case domain.RoleVendedor:
		return domain.DestinationSellerArea
	case domain.RoleConsultor:
		return domain.DestinationConsultantArea
	default:
		return domain.DestinationLogin
	}
}

// SelectableAreas lists the areas offered on the selector view. Only
// administrators get a choice; everyone else is sent to DefaultArea.
func SelectableAreas(role domain.Role) []domain.Destination {
	if role != domain.RoleAdmin {
		return nil
	}
	return []domain.Destination{
		domain.DestinationAdminArea,
		domain.DestinationSellerArea,
		domain.DestinationConsultantArea,
	}
}
