package rewards

// RequireOwner rejects callers other than the configured owner. It gates
// contribution recording, catalog administration, and policy updates.
// Redemption is deliberately not owner-gated: any caller spends against their
// own balance only.
func RequireOwner(caller, owner string) error {
	if caller != owner {
		return ErrUnauthorized
	}
	return nil
}
