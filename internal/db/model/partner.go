package model

const AuthorizedPartnerCollection = "authorized_partners"

// AuthorizedPartnerDocument is one entry in the owner-managed logistics
// partner allow-list. Membership is checked per call, never cached on the
// guarantee record.
type AuthorizedPartnerDocument struct {
	Account      string `bson:"_id"`
	AuthorizedBy string `bson:"authorized_by"`
	CreatedAt    int64  `bson:"created_at"`
}

func NewAuthorizedPartnerDocument(account, authorizedBy string, createdAt int64) *AuthorizedPartnerDocument {
	return &AuthorizedPartnerDocument{
		Account:      account,
		AuthorizedBy: authorizedBy,
		CreatedAt:    createdAt,
	}
}
