package service

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/dchest/uniuri"
)

var referralChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

const referralCodeAttempts = 10

var errReferralCodeSpace = errors.New("could not generate a free referral code")

// newReferralCode draws 8-char codes until one is unused.
func newReferralCode(ctx context.Context, users UserStore) (string, error) {
	for i := 0; i < referralCodeAttempts; i++ {
		code := uniuri.NewLenChars(8, referralChars)
		taken, err := users.ReferralCodeTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", errReferralCodeSpace
}

// newUniqueID returns a random 8-digit public id.
func newUniqueID() int64 {
	return 10000000 + rand.Int64N(90000000)
}
