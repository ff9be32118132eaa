// Package member defines the roster's member model.
//
// A member is a registered principal holding a term-bounded seat: a House
// representative, a senator, a non-voting delegate, the vice president, or
// the president. Registration is one-time per principal, forever; there is no
// removal operation. Whether a member is active at an instant is a derived
// predicate over the term window, which sidesteps the missed-update bugs of a
// mutable is-active flag.
package member
