package starbook

// DenyReason identifies why an access decision came back negative.
type DenyReason string

const (
	// DenyPermission: the actor is neither the owner/admin nor covered by the
	// entity's disclosure or shared type.
	DenyPermission DenyReason = "permission"

	// DenyArticleDeleted: the article is in the trash and the actor is not
	// its owner.
	DenyArticleDeleted DenyReason = "article_deleted"

	// DenyNoAdmin: the constellation has no admin member. This violates the
	// one-admin invariant and is reported as an invalid request.
	DenyNoAdmin DenyReason = "no_admin"
)

// Decision is the outcome of an access check: either an allow, or a deny
// carrying its reason. It is a first-class value so call sites can map the
// same decision to different errors.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Allow returns a positive decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a negative decision with a reason.
func Deny(reason DenyReason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Err maps a deny decision to its canonical error. Returns nil for allows.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case DenyArticleDeleted:
		return ErrArticleDeleted
	case DenyNoAdmin:
		return ErrInvalidRequest
	default:
		return ErrPermissionDenied
	}
}

// CanViewArticle decides whether the actor may see the article.
// Trashed articles stay visible to their owner only; everyone else gets the
// deletion reported rather than a plain permission error. Active articles are
// visible to their owner and, when disclosure is VISIBLE, to anyone.
func CanViewArticle(actorID int64, article *Article) Decision {
	if article.Trashed() {
		if article.OwnerID == actorID {
			return Allow()
		}
		return Deny(DenyArticleDeleted)
	}
	if article.OwnerID == actorID || article.Disclosure == DisclosureVisible {
		return Allow()
	}
	return Deny(DenyPermission)
}

// CanMutateArticle decides whether the actor may modify, delete, restore or
// re-home the article. Only the owner may.
func CanMutateArticle(actorID int64, article *Article) Decision {
	if article.OwnerID == actorID {
		return Allow()
	}
	return Deny(DenyPermission)
}

// CanViewConstellation decides whether the actor may see the constellation:
// members always may, and anyone may when the constellation is SHARED.
func CanViewConstellation(actorID int64, constellation *Constellation, roster *ConstellationRoster) Decision {
	if roster.HasMember(actorID) {
		return Allow()
	}
	if constellation.Shared == SharedTypeShared {
		return Allow()
	}
	return Deny(DenyPermission)
}

// CanAdministerConstellation decides whether the actor holds the admin role.
// A constellation without any admin violates the membership invariant and is
// reported as DenyNoAdmin.
func CanAdministerConstellation(actorID int64, roster *ConstellationRoster) Decision {
	admin := roster.Admin()
	if admin == nil {
		return Deny(DenyNoAdmin)
	}
	if admin.UserID != actorID {
		return Deny(DenyPermission)
	}
	return Allow()
}

// ArticleFilter selects which of an owner's articles a viewer gets to see.
// It is consumed by the storage queries; trashed articles are always excluded.
type ArticleFilter struct {
	OwnerID int64

	// VisibleOnly restricts the result to articles with disclosure VISIBLE.
	VisibleOnly bool
}

// VisibleArticlesFor selects the filter branch for listing one user's
// articles to a viewer. The owner sees everything of their own. A viewer with
// a follow edge to the owner gets the unrestricted non-deleted set; following
// does not narrow nor widen disclosure beyond that branch choice. Anyone else
// sees only VISIBLE articles.
//
// The follow branch mirrors the upstream behavior verbatim even though its
// intent is ambiguous; see DESIGN.md before changing it.
func VisibleArticlesFor(viewerID, ownerID int64, follows bool) ArticleFilter {
	if viewerID == ownerID {
		return ArticleFilter{OwnerID: ownerID}
	}
	if follows {
		return ArticleFilter{OwnerID: ownerID}
	}
	return ArticleFilter{OwnerID: ownerID, VisibleOnly: true}
}
