package rewards

import "errors"

var (
	ErrUnauthorized                 = errors.New("rewards: unauthorized")
	ErrInvalidMetric                = errors.New("rewards: metric score out of range")
	ErrInvalidCost                  = errors.New("rewards: cost must be positive")
	ErrInvalidRewardRate            = errors.New("rewards: reward rate must be <= 100")
	ErrOptionNotFound               = errors.New("rewards: redemption option not found")
	ErrOptionUnavailable            = errors.New("rewards: redemption option not available")
	ErrInsufficientRedemptionAmount = errors.New("rewards: amount below option cost")
	ErrInsufficientBalance          = errors.New("rewards: insufficient balance")
	// ErrInvalidRedemptionOption marks a catalog entry whose name falls outside
	// the known benefit set. It is an integrity fault, not a user error, and
	// aborts the redemption before any balance change.
	ErrInvalidRedemptionOption = errors.New("rewards: invalid redemption option")
)
