// Package tui is a terminal client for a Traska space race session, drawn with tcell.
//
// The grid shows the ship as @, fuel deposits as their amount, S and F for the
// start and finish. Cells the ship can reach this turn are highlighted.
//
// Keys:
//   - arrows: move the cursor
//   - enter: fly to the cursor cell
//   - i: repeat the previous vector
//   - h: put the cursor on the next cell of a fewest-move plan
//   - r: back to the start of the same map
//   - n: new map
//   - q, esc: quit
//
// After the finish is reached the client asks for a name and records the run
// on the scoreboard. Enter records the typed name as is, even when empty; esc
// records the run without a name.
package tui
