// Package domain contains the core business entities and value objects of the
// marketplace: users and their roles, and the listings they sell. It is
// independent of any storage or delivery mechanism.
package domain
