// Package bill models the bill ledger entries and their voting state machine.
//
// A bill moves through phases in strict order and no phase is ever revisited:
// House, then Senate, then (only after a Senate tie) the vice president's tie
// break, then the president's decision, then closed. A chamber phase resolves
// when every seat in the chamber has voted, measured against the live chamber
// size at the moment the last vote lands. A tied full House vote produces no
// rejected terminal state: the bill simply never advances. That models
// procedural deadlock faithfully and is intentional.
package bill
