// Package layers keeps the ordered set of garments applied to the current
// render.
//
// Entries are ordered by category rank, lower ranks first. Entries of equal
// rank keep their insertion order. Each insertion is stamped with a
// monotonically increasing sequence number so the most recently applied
// garment can be removed even when it does not sit last in rank order.
package layers
