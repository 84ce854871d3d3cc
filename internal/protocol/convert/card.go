package convert

import (
	"github.com/palemoky/gan-deng-yan/internal/game/card"
	"github.com/palemoky/gan-deng-yan/internal/protocol"
)

// CardToInfo 将 card.Card 转换为 protocol.CardInfo
func CardToInfo(c card.Card) protocol.CardInfo {
	return protocol.CardInfo{
		ID:      c.ID,
		Suit:    c.Suit.Name(),
		Rank:    int(c.Rank),
		Display: c.Display(),
	}
}

// CardsToInfos 将 []card.Card 转换为 []protocol.CardInfo
func CardsToInfos(cards []card.Card) []protocol.CardInfo {
	infos := make([]protocol.CardInfo, len(cards))
	for i, c := range cards {
		infos[i] = CardToInfo(c)
	}
	return infos
}

// InfoToCard 将 protocol.CardInfo 转换为 card.Card，花色无法识别时返回错误
func InfoToCard(info protocol.CardInfo) (card.Card, error) {
	var suit card.Suit
	if err := suit.UnmarshalText([]byte(info.Suit)); err != nil {
		return card.Card{}, err
	}
	return card.Card{
		ID:   info.ID,
		Suit: suit,
		Rank: card.Rank(info.Rank),
	}, nil
}

// InfosToCards 将 []protocol.CardInfo 转换为 []card.Card
func InfosToCards(infos []protocol.CardInfo) ([]card.Card, error) {
	cards := make([]card.Card, len(infos))
	for i, info := range infos {
		c, err := InfoToCard(info)
		if err != nil {
			return nil, err
		}
		cards[i] = c
	}
	return cards, nil
}
