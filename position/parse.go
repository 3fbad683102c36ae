// Package position reads and writes the plain-text board format:
//
//	<turn> <W|B>
//	kqbnr      (rank 6)
//	ppppp
//	.....
//	.....
//	PPPPP
//	RNBQK      (rank 1)
//
// Rows are always written from rank 6 down to rank 1.
package position

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pfaffle/MiniChessBot/board"
	"github.com/pfaffle/MiniChessBot/game"
)

// InvalidBoardFormatError describes what is wrong with a serialized board.
// Line is 1-based; 0 means the text as a whole.
type InvalidBoardFormatError struct {
	Line   int
	Reason string
}

func (e *InvalidBoardFormatError) Error() string {
	if e.Line == 0 {
		return "invalid board format: " + e.Reason
	}
	return fmt.Sprintf("invalid board format on line %d: %s", e.Line, e.Reason)
}

func formatErr(line int, reason string, args ...any) error {
	return &InvalidBoardFormatError{Line: line, Reason: fmt.Sprintf(reason, args...)}
}

func parseHeader(line string, maxTurns int) (int, board.Side, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, board.White, formatErr(1, "missing turn counter")
	}
	if len(fields) != 2 {
		return 0, board.White, formatErr(1, "expected \"<turn> <W|B>\", got %q", line)
	}
	turn, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, board.White, formatErr(1, "turn counter %q is not a number", fields[0])
	}
	if turn < 1 {
		return 0, board.White, formatErr(1, "turn counter %d is below 1", turn)
	}
	if turn > maxTurns+1 {
		return 0, board.White, formatErr(1, "turn counter %d exceeds the draw ceiling of %d", turn, maxTurns)
	}
	var side board.Side
	switch strings.ToUpper(fields[1]) {
	case "W":
		side = board.White
	case "B":
		side = board.Black
	default:
		return 0, board.White, formatErr(1, "side to move must be W or B, got %q", fields[1])
	}
	return turn, side, nil
}

func rowToPieces(row string, lineNo int) ([board.NumFiles]board.Piece, error) {
	var pieces [board.NumFiles]board.Piece
	if len(row) != board.NumFiles {
		return pieces, formatErr(lineNo, "expected %d squares, got %d", board.NumFiles, len(row))
	}
	for f := 0; f < board.NumFiles; f++ {
		if !board.ValidPiece(row[f]) {
			return pieces, formatErr(lineNo, "unrecognized piece %q", row[f])
		}
		pieces[f] = board.Piece(row[f])
	}
	return pieces, nil
}

// Parse reads a serialized board into a game state. rules may be nil.
func Parse(text string, rules *game.Rules) (*game.State, error) {
	if rules == nil {
		rules = game.DefaultRules()
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, formatErr(1, "missing turn counter")
	}
	turn, side, err := parseHeader(lines[0], rules.MaxTurns)
	if err != nil {
		return nil, err
	}
	rows := lines[1:]
	if len(rows) != board.NumRanks {
		return nil, formatErr(0, "expected %d rows, got %d", board.NumRanks, len(rows))
	}

	var b board.Board
	for i, row := range rows {
		pieces, err := rowToPieces(strings.TrimSpace(row), i+2)
		if err != nil {
			return nil, err
		}
		rank := board.NumRanks - 1 - i
		for f, p := range pieces {
			b.Set(board.Sq(f, rank), p)
		}
	}

	st, err := game.NewFromPosition(rules, b, turn, side)
	if err != nil {
		var te *game.TurnOutOfRangeError
		if errors.As(err, &te) {
			return nil, formatErr(1, "%s", te.Error())
		}
		return nil, err
	}
	log.Debug().Int("turn", turn).Str("onturn", side.String()).
		Str("result", st.Playing().String()).Msg("parsed-position")
	return st, nil
}

// Serialize writes a game state in the board text format, with a trailing
// newline.
func Serialize(st *game.State) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d %c\n", st.Turn(), st.PlayerOnTurn().Letter())
	b := st.Board()
	for r := board.NumRanks - 1; r >= 0; r-- {
		sb.WriteString(b.Row(r))
		sb.WriteByte('\n')
	}
	return sb.String()
}
