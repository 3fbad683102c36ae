package bot

import (
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/pfaffle/MiniChessBot/game"
	"github.com/pfaffle/MiniChessBot/move"
	"github.com/pfaffle/MiniChessBot/position"
)

// Reply is a decoded bot answer.
type Reply struct {
	Move  move.Move
	Value int
	Depth int
}

type Client struct {
	nc      *nats.Conn
	channel string
}

func NewClient(nc *nats.Conn, channel string) *Client {
	return &Client{nc: nc, channel: channel}
}

// MakeRequest encodes a request for st with the given budget.
func MakeRequest(st *game.State, budget time.Duration) ([]byte, error) {
	req, err := structpb.NewStruct(map[string]any{
		FieldPosition:  position.Serialize(st),
		FieldMaxTimeMs: float64(budget.Milliseconds()),
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(req)
}

// ParseReply decodes a reply produced by Bot.Respond.
func ParseReply(data []byte) (*Reply, error) {
	resp := structpb.Struct{}
	if err := proto.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	if e, ok := resp.Fields[FieldError]; ok {
		return nil, errors.New("bot returned: " + e.GetStringValue())
	}
	mv, ok := resp.Fields[FieldMove]
	if !ok {
		return nil, errors.New("reply has no move")
	}
	m, err := move.FromString(mv.GetStringValue())
	if err != nil {
		return nil, err
	}
	return &Reply{
		Move:  m,
		Value: int(resp.Fields[FieldValue].GetNumberValue()),
		Depth: int(resp.Fields[FieldDepth].GetNumberValue()),
	}, nil
}

// RequestMove sends st to the bot and waits for its move.
func (c *Client) RequestMove(st *game.State, budget time.Duration) (*Reply, error) {
	data, err := MakeRequest(st, budget)
	if err != nil {
		return nil, err
	}
	res, err := c.nc.Request(c.channel, data, budget+10*time.Second)
	if err != nil {
		if c.nc.LastError() != nil {
			log.Error().Msgf("%v for request", c.nc.LastError())
		}
		log.Error().Msgf("%v for request", err)
		return nil, err
	}
	log.Debug().Int("bytes", len(res.Data)).Msg("got-reply")
	return ParseReply(res.Data)
}
