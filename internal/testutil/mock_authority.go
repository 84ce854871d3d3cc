//go:build !production

package testutil

import (
	"github.com/stretchr/testify/mock"

	"github.com/palemoky/gan-deng-yan/internal/game/card"
	"github.com/palemoky/gan-deng-yan/internal/game/session"
)

// MockAuthority 实现 netsync.Authority 的 mock。
// SubscribeVersioned 不经过 mock，记录回调供测试手动推送。
type MockAuthority struct {
	mock.Mock

	Subscriber func(state session.GameState, version uint64)
}

func (m *MockAuthority) VersionedSnapshot() (session.GameState, uint64) {
	args := m.Called()
	return args.Get(0).(session.GameState), args.Get(1).(uint64)
}

func (m *MockAuthority) SubscribeVersioned(fn func(state session.GameState, version uint64)) func() {
	m.Subscriber = fn
	return func() {}
}

func (m *MockAuthority) Join(name, peerID string) (session.Player, error) {
	args := m.Called(name, peerID)
	return args.Get(0).(session.Player), args.Error(1)
}

func (m *MockAuthority) Disconnect(peerID string) {
	m.Called(peerID)
}

func (m *MockAuthority) ProposePlay(playerID string, cards []card.Card, hint int) error {
	args := m.Called(playerID, cards, hint)
	return args.Error(0)
}

func (m *MockAuthority) ProposePass(playerID string) error {
	args := m.Called(playerID)
	return args.Error(0)
}
