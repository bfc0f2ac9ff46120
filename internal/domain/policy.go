package domain

import "github.com/google/uuid"

func canAuthorCatalog(actor Actor) bool {
	switch actor.Role {
	case RoleAdmin, RoleBrandOwner, RoleBrandManager:
		return true
	default:
		return false
	}
}

func CanCreateBrand(actor Actor) bool {
	return canAuthorCatalog(actor)
}

func CanCreateProduct(actor Actor) bool {
	return canAuthorCatalog(actor)
}

// CanManageBrand reports whether actor may edit b. Collaborators edit but
// never delete.
func CanManageBrand(actor Actor, b Brand) bool {
	if actor.Anonymous() {
		return false
	}
	if actor.IsAdmin() || actor.AccountID == b.OwnerID {
		return true
	}
	for _, id := range b.Collaborators {
		if id == actor.AccountID {
			return true
		}
	}
	return false
}

func CanDeleteBrand(actor Actor, b Brand) bool {
	if actor.Anonymous() {
		return false
	}
	return actor.IsAdmin() || actor.AccountID == b.OwnerID
}

func CanManageProduct(actor Actor, p Product) bool {
	if actor.Anonymous() {
		return false
	}
	return actor.IsAdmin() || (p.OwnerID != uuid.Nil && actor.AccountID == p.OwnerID)
}

// CanSeeBrand reports whether b is listed for actor at all.
func CanSeeBrand(actor Actor, b Brand) bool {
	if CanManageBrand(actor, b) {
		return true
	}
	return b.Status == BrandActive && bool(b.VisibilitySettings.IsPublic)
}

// VisibleTo returns the copy of b that actor is allowed to read. Managers see
// everything; everyone else gets the members hidden by the visibility
// settings blanked.
func (b Brand) VisibleTo(actor Actor) Brand {
	if CanManageBrand(actor, b) {
		return b
	}
	v := b.VisibilitySettings
	if !v.ShowEmail {
		b.Email = ""
	}
	if !v.ShowPhone {
		b.Phone = ""
	}
	if !v.ShowAddress {
		b.Address = ""
	}
	if !v.ShowSocial {
		b.SocialLinks = SocialLinks{}
	}
	if !v.ShowGallery {
		b.GalleryImages = StringList{}
	}
	b.Collaborators = []uuid.UUID{}
	b.ChangeHistory = []BrandChange{}
	return b
}
