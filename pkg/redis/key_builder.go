package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// Leaderboard key builders
func (kb *KeyBuilder) KeyLeaderboard() string {
	return kb.BuildKey(KeyLeaderboard)
}

// Voting key builders
func (kb *KeyBuilder) KeyVotingStatus() string {
	return kb.BuildKey(KeyVotingStatus)
}

func (kb *KeyBuilder) KeyVoterVoted(sessionID, voterID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyVoterVoted, sessionID, voterID))
}

func (kb *KeyBuilder) KeySessionFinalized(sessionID string) string {
	return kb.BuildKey(fmt.Sprintf(KeySessionFinalized, sessionID))
}

// Generic key builders for custom patterns
func (kb *KeyBuilder) KeyCustom(pattern string, args ...interface{}) string {
	key := fmt.Sprintf(pattern, args...)
	return kb.BuildKey(key)
}
