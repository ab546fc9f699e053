// Package service provides domain services for CartVault.
//
// CartService handles cart lifecycle operations and recovery-token
// orchestration on top of a CartRepository.
package service
