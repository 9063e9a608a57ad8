// Package hw defines the vocabulary shared by the resolver: frequencies,
// phases, clock domains and the capability interfaces of the PLL and board
// collaborators.
package hw
