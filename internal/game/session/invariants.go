package session

import (
	"errors"
	"fmt"

	"github.com/palemoky/gan-deng-yan/internal/game/card"
)

// CheckInvariants 校验状态的一致性，出牌中途任何时刻都应该成立
func (gs *GameState) CheckInvariants() error {
	var errs []error

	if n := len(gs.Players); n > 0 {
		if gs.CurrentPlayerIndex < 0 || gs.CurrentPlayerIndex >= n {
			errs = append(errs, fmt.Errorf("currentPlayerIndex %d out of range", gs.CurrentPlayerIndex))
		}
		if gs.DealerID < 0 || gs.DealerID >= n {
			errs = append(errs, fmt.Errorf("dealerId %d out of range", gs.DealerID))
		}
	}

	for _, p := range gs.Players {
		if p.CardsLeft != len(p.Hand) {
			errs = append(errs, fmt.Errorf("player %s: cardsLeft %d != hand %d", p.ID, p.CardsLeft, len(p.Hand)))
		}
	}

	if gs.BombCount < 0 {
		errs = append(errs, fmt.Errorf("negative bombCount %d", gs.BombCount))
	}

	if gs.Status == StatusPlaying {
		if err := gs.checkConservation(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// checkConservation 手牌、牌堆、桌面和弃牌合起来正好是一副牌
func (gs *GameState) checkConservation() error {
	seen := make(map[int]bool, card.DeckSize)
	add := func(cards []card.Card) error {
		for _, c := range cards {
			if seen[c.ID] {
				return fmt.Errorf("card %d (%s) appears twice", c.ID, c.Display())
			}
			seen[c.ID] = true
		}
		return nil
	}

	for _, p := range gs.Players {
		if err := add(p.Hand); err != nil {
			return err
		}
	}
	if err := add(gs.Deck); err != nil {
		return err
	}
	for _, h := range gs.TablePile {
		if err := add(h.Cards); err != nil {
			return err
		}
	}
	if err := add(gs.DiscardPile); err != nil {
		return err
	}

	if len(seen) != card.DeckSize {
		return fmt.Errorf("card count %d != %d", len(seen), card.DeckSize)
	}
	return nil
}

// CardsInPlay 手牌与牌堆的总数，发牌后出第一手之前等于 54
func (gs *GameState) CardsInPlay() int {
	total := len(gs.Deck)
	for _, p := range gs.Players {
		total += p.CardsLeft
	}
	return total
}
