// Package bot answers best-move requests over NATS. Requests and replies are
// protobuf-encoded google.protobuf.Struct messages:
//
//	request: {"position": "<board text>", "maxtime_ms": 1500}
//	reply:   {"move": "a2-a3", "value": 120, "depth": 7}
//	     or: {"error": "..."}
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/pfaffle/MiniChessBot/config"
	"github.com/pfaffle/MiniChessBot/engine"
	"github.com/pfaffle/MiniChessBot/game"
	"github.com/pfaffle/MiniChessBot/position"
)

const (
	FieldPosition  = "position"
	FieldMaxTimeMs = "maxtime_ms"
	FieldMove      = "move"
	FieldValue     = "value"
	FieldDepth     = "depth"
	FieldError     = "error"
)

// MaxRequestTime caps the budget a client may ask for.
const MaxRequestTime = time.Minute

type Bot struct {
	config *config.Config
	engine *engine.Engine
}

func NewBot(cfg *config.Config) *Bot {
	return &Bot{config: cfg, engine: engine.New(cfg)}
}

func errorResponse(message string, err error) *structpb.Struct {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err.Error())
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldError: structpb.NewStringValue(msg),
	}}
}

// Deserialize reads a request into a position and a search budget. A
// missing or zero maxtime_ms means the configured search time.
func (bot *Bot) Deserialize(data []byte) (*game.State, time.Duration, error) {
	req := structpb.Struct{}
	if err := proto.Unmarshal(data, &req); err != nil {
		return nil, 0, err
	}
	pos, ok := req.Fields[FieldPosition]
	if !ok {
		return nil, 0, errors.New("request has no position")
	}
	st, err := position.Parse(pos.GetStringValue(), bot.engine.Rules())
	if err != nil {
		return nil, 0, err
	}
	ms := req.Fields[FieldMaxTimeMs].GetNumberValue()
	if ms < 0 {
		return nil, 0, fmt.Errorf("negative %s: %v", FieldMaxTimeMs, ms)
	}
	budget := min(time.Duration(ms*float64(time.Millisecond)), MaxRequestTime)
	return st, budget, nil
}

func (bot *Bot) handle(ctx context.Context, data []byte) *structpb.Struct {
	st, budget, err := bot.Deserialize(data)
	if err != nil {
		return errorResponse("could not read request", err)
	}
	res, err := bot.engine.Search(ctx, st, budget)
	if err != nil {
		return errorResponse("could not search", err)
	}
	log.Info().Str("move", res.Move.String()).Int("value", res.Value).
		Int("depth", res.Depth).Str("stop", res.Stop.String()).Msg("generated-move")
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldMove:  structpb.NewStringValue(res.Move.String()),
		FieldValue: structpb.NewNumberValue(float64(res.Value)),
		FieldDepth: structpb.NewNumberValue(float64(res.Depth)),
	}}
}

// Respond handles one request and returns the encoded reply.
func (bot *Bot) Respond(ctx context.Context, data []byte) []byte {
	resp := bot.handle(ctx, data)
	out, err := proto.Marshal(resp)
	if err != nil {
		// Should never happen, but the caller still needs an answer.
		return []byte(err.Error())
	}
	return out
}

// Main subscribes to channel and answers requests until ctx is done.
// Requests are handled one at a time.
func Main(ctx context.Context, channel string, bot *Bot) error {
	nc, err := nats.Connect(bot.config.GetString(config.ConfigNatsURL))
	if err != nil {
		return err
	}
	defer nc.Close()

	sub, err := nc.Subscribe(channel, func(m *nats.Msg) {
		log.Info().Int("bytes", len(m.Data)).Msg("received-request")
		if err := m.Respond(bot.Respond(ctx, m.Data)); err != nil {
			log.Err(err).Msg("respond-error")
		}
	})
	if err != nil {
		return err
	}
	if err := nc.Flush(); err != nil {
		return err
	}
	if err := nc.LastError(); err != nil {
		return err
	}
	log.Info().Str("channel", channel).Msg("listening")

	<-ctx.Done()
	log.Info().Msg("draining")
	return sub.Drain()
}
