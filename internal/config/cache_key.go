package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuizAnswersKey returns the storage key holding a user's in-progress answer
// ledger. The ledger survives reloads under this key until finalization
// succeeds or the user explicitly resets.
func (r *CacheKeyStruct) QuizAnswersKey(userID string) string {
	return fmt.Sprintf("user:%s:quiz_answers", userID)
}

// DarkModeKey returns the storage key for a user's display preference.
func (r *CacheKeyStruct) DarkModeKey(userID string) string {
	return fmt.Sprintf("user:%s:dark_mode", userID)
}

var CacheKey = NewCacheKeyStruct()
