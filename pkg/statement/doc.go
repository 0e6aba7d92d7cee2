// Package statement evaluates the Innocence statements: predicates over a
// private witness and a public claim that a proving backend wraps into a
// succinct proof.
//
// Five statements are supported:
//
//   - Ownership: the prover knows (secret, nullifier) behind a commitment.
//   - Balance: the committed position holds at least a minimum balance of an
//     asset and its balance leaf is in a published Merkle tree.
//   - Compliance: the committed position carries an unexpired certificate
//     signed by a compliance authority. Superseded by Innocence.
//   - Innocence: a depositor address is not on the sanctions list identified
//     by a published root.
//   - Trade: the committed position can fund a trade with valid parameters.
//
// Every predicate runs its checks in a fixed order and stops at the first
// failure, returning a *Rejection and no output. Predicates are pure
// functions of their inputs and may run concurrently.
package statement
