//go:build race

package auth

// Race builds are much slower, keep hashing at the minimum accepted cost.
func passwordHashCost() int {
	return MinPasswordHashCost
}
