package session

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/gan-deng-yan/internal/apperrors"
	"github.com/palemoky/gan-deng-yan/internal/game/bot"
	"github.com/palemoky/gan-deng-yan/internal/game/card"
	"github.com/palemoky/gan-deng-yan/internal/game/score"
)

func TestAddPlayer(t *testing.T) {
	t.Parallel()

	gs := New()
	require.NoError(t, gs.StartWaiting(""))
	assert.Equal(t, StatusWaiting, gs.Status)
	assert.NotEmpty(t, gs.Network.RoomID)

	p, err := gs.AddPlayer(Player{PeerID: "peer-1", Role: RoleGuest})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "玩家1", p.Name)
	assert.Equal(t, seatColors[0], p.Color)
	assert.Contains(t, gs.Scores, p.ID)

	again, err := gs.AddPlayer(Player{PeerID: "peer-1", Name: "重连"})
	require.NoError(t, err)
	assert.Same(t, p, again, "same peer keeps its seat")
	assert.Len(t, gs.Players, 1)

	for i := 2; i <= MaxPlayers; i++ {
		_, err := gs.AddPlayer(Player{PeerID: fmt.Sprintf("peer-%d", i)})
		require.NoError(t, err)
	}
	_, err = gs.AddPlayer(Player{PeerID: "peer-late"})
	assert.ErrorIs(t, err, apperrors.ErrRoomFull)

	require.NoError(t, gs.StartNewHand(rand.New(rand.NewPCG(1, 2))))
	assert.ErrorIs(t, gs.RemovePlayer(p.ID), apperrors.ErrGameStarted)
}

func TestAddPlayer_AfterStart(t *testing.T) {
	t.Parallel()

	gs := NewTestGame([][]card.Card{{s3}, {s4}}, nil)

	_, err := gs.AddPlayer(Player{PeerID: "late"})
	assert.ErrorIs(t, err, apperrors.ErrGameStarted)
	assert.ErrorIs(t, gs.RemovePlayer("p1"), apperrors.ErrGameStarted)
}

func TestRemovePlayer(t *testing.T) {
	t.Parallel()

	gs := New()
	a, err := gs.AddPlayer(Player{ID: "a"})
	require.NoError(t, err)
	_, err = gs.AddPlayer(Player{ID: "b"})
	require.NoError(t, err)

	require.NoError(t, gs.RemovePlayer(a.ID))
	assert.Len(t, gs.Players, 1)
	assert.NotContains(t, gs.Scores, "a")
	assert.ErrorIs(t, gs.RemovePlayer("a"), apperrors.ErrNotInRoom)
}

func TestSeatBots(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		seats int
		want  int
	}{
		{"clamped to minimum", 1, MinPlayers},
		{"normal", 4, 4},
		{"clamped to maximum", 10, MaxPlayers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gs := New()
			_, err := gs.AddPlayer(Player{ID: "me", Role: RoleLocal})
			require.NoError(t, err)

			require.NoError(t, gs.SeatBots(tt.seats))
			require.Len(t, gs.Players, tt.want)
			for _, p := range gs.Players[1:] {
				assert.True(t, p.IsAI)
				assert.Equal(t, RoleBot, p.Role)
			}
			assert.Equal(t, "bot-1", gs.Players[1].ID)
			assert.Equal(t, "电脑1", gs.Players[1].Name)
		})
	}
}

func TestConvertToBot(t *testing.T) {
	t.Parallel()

	gs := New()
	_, err := gs.AddPlayer(Player{ID: "g", Name: "小明", PeerID: "peer-g", Role: RoleGuest})
	require.NoError(t, err)

	assert.False(t, gs.ConvertToBot("unknown"))
	require.True(t, gs.ConvertToBot("peer-g"))

	p := gs.Player("g")
	assert.True(t, p.IsAI)
	assert.Equal(t, RoleBot, p.Role)
	assert.Empty(t, p.PeerID)
	assert.Equal(t, "小明(托管)", p.Name)
	assert.Nil(t, gs.PlayerByPeer("peer-g"))
}

func TestStartNewHand_Deal(t *testing.T) {
	t.Parallel()

	for n := MinPlayers; n <= MaxPlayers; n++ {
		t.Run(fmt.Sprintf("%d players", n), func(t *testing.T) {
			t.Parallel()

			gs := New()
			require.NoError(t, gs.SeatBots(n))
			require.NoError(t, gs.BeginDealing())
			assert.Equal(t, StatusDealing, gs.Status)

			require.NoError(t, gs.StartNewHand(rand.New(rand.NewPCG(uint64(n), 42))))

			assert.Equal(t, StatusPlaying, gs.Status)
			assert.Equal(t, 1, gs.HandNumber)
			assert.Equal(t, gs.DealerID, gs.CurrentPlayerIndex)
			for i, p := range gs.Players {
				want := OtherCards
				if i == gs.DealerID {
					want = DealerCards
				}
				assert.Len(t, p.Hand, want, "seat %d", i)
				assert.Equal(t, len(p.Hand), p.CardsLeft)
				assert.True(t, slices.IsSortedFunc(p.Hand, func(a, b card.Card) int {
					return int(a.Rank) - int(b.Rank)
				}))
			}
			assert.Len(t, gs.Deck, card.DeckSize-OtherCards*n-1)
			assert.Equal(t, card.DeckSize, gs.CardsInPlay())
			require.NoError(t, gs.CheckInvariants())
		})
	}
}

func TestStartNewHand_Errors(t *testing.T) {
	t.Parallel()

	gs := New()
	_, err := gs.AddPlayer(Player{ID: "solo"})
	require.NoError(t, err)
	assert.ErrorIs(t, gs.StartNewHand(nil), apperrors.ErrNotEnoughPlayers)
	assert.ErrorIs(t, gs.BeginDealing(), apperrors.ErrNotEnoughPlayers)

	playing := NewTestGame([][]card.Card{{s3}, {s4}}, nil)
	assert.ErrorIs(t, playing.StartNewHand(nil), apperrors.ErrWrongPhase)
	assert.ErrorIs(t, playing.BeginDealing(), apperrors.ErrWrongPhase)
}

func TestReset(t *testing.T) {
	t.Parallel()

	gs := NewTestGame([][]card.Card{{s3}, {s4}}, nil)
	gs.Network = Network{Role: RoleHost, RoomID: "room", MyPlayerID: "p1"}
	gs.Scores["p1"] = 10

	gs.Reset()

	assert.Equal(t, StatusLobby, gs.Status)
	assert.Empty(t, gs.Players)
	assert.Empty(t, gs.Scores)
	assert.Zero(t, gs.HandNumber)
	assert.Equal(t, Network{Role: RoleHost, MyPlayerID: "p1"}, gs.Network)
}

func TestClone_Independent(t *testing.T) {
	t.Parallel()

	gs := NewTestGame([][]card.Card{{s3, s8}, {s4, s9}}, []card.Card{d5})
	_, err := gs.Play("p1", []card.Card{s3}, 0)
	require.NoError(t, err)
	gs.GameHistory = []map[string]int{{"p1": 1}}

	cp := gs.Clone()
	require.Equal(t, gs, cp)

	cp.Players[0].Hand[0] = s9
	cp.TablePile[0].Cards[0] = s9
	cp.Scores["p1"] = 99
	cp.GameHistory[0]["p1"] = 99

	assert.Equal(t, s8, gs.Players[0].Hand[0])
	assert.Equal(t, s3, gs.TablePile[0].Cards[0])
	assert.Zero(t, gs.Scores["p1"])
	assert.Equal(t, 1, gs.GameHistory[0]["p1"])
}

// TestSimulatedGames 由电脑对打若干手，每一步后检查不变量
func TestSimulatedGames(t *testing.T) {
	t.Parallel()

	for seed := range uint64(20) {
		n := MinPlayers + int(seed)%(MaxPlayers-MinPlayers+1)
		t.Run(fmt.Sprintf("seed %d, %d players", seed, n), func(t *testing.T) {
			t.Parallel()

			gs := New()
			require.NoError(t, gs.SeatBots(n))
			require.NoError(t, gs.StartNewHand(rand.New(rand.NewPCG(seed, seed*31+7))))

			hands := 0
			for steps := 0; hands < 3; steps++ {
				require.Less(t, steps, 5000, "game did not terminate")

				switch gs.Status {
				case StatusCelebrating:
					res, err := gs.EnterScoring()
					require.NoError(t, err)
					sum := 0
					for _, d := range res.Deltas {
						sum += d
					}
					require.Zero(t, sum, "scores are zero-sum")
					hands++
					continue
				case StatusScoring:
					require.NoError(t, gs.StartNewHand(nil))
					continue
				}

				p := gs.CurrentPlayer()
				handNumber, bombs := gs.HandNumber, gs.BombCount

				move := bot.Choose(p.Hand, gs.LastHand())
				if move.IsPass() {
					require.NoError(t, gs.Pass(p.ID))
				} else {
					_, err := gs.Play(p.ID, move.Cards, move.Hint)
					require.NoError(t, err, "bot move %v", card.Ranks(move.Cards))
				}

				require.NoError(t, gs.CheckInvariants())
				if gs.HandNumber == handNumber {
					require.GreaterOrEqual(t, gs.BombCount, bombs)
				}
			}
			assert.Equal(t, score.Totals(gs.GameHistory), gs.Scores)
		})
	}
}
