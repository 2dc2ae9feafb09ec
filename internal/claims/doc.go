// Package claims manages quality and quantity disputes raised against
// delivered orders: open, decided, and settled when money moves.
package claims
