package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/wfunc/catan/agent"
	"github.com/wfunc/catan/game"
	"github.com/wfunc/catan/logger"
)

// OfferTrade 交易协商：按回合顺序依次把同一份提议发给其他每个玩家，
// 一旦有人接受就停止，控制权回到报价玩家的自由回合。
// 串行询问：同一时刻只有一个对手的 objective 是 ACCEPT_TRADE。
func (c *GameController) OfferTrade(ctx context.Context, offeringPlayer *game.Player, offer, request game.ResourceSet) error {
	offAg, ok := c.AgentFor(offeringPlayer.ID)
	if !ok {
		return fmt.Errorf("no agent for offering player %s", offeringPlayer.ID)
	}

	// 报价方名义上保持激活；询问对手时临时切换，问完恢复
	prev := c.setActive(offAg)
	defer c.setActive(prev)

	tradeOffer := &game.TradeOffer{
		From:    offeringPlayer,
		Offer:   offer.Clone(),
		Request: request.Clone(),
	}

	for _, cand := range c.turnOrder() {
		if cand == offAg {
			continue
		}
		accepted, err := c.offerTo(ctx, cand, tradeOffer)
		if err != nil {
			return err
		}
		if accepted {
			return nil
		}
	}
	return nil
}

// offerTo 向一个候选对手提出交易，阻塞等待其答复。
// 无论接受、拒绝还是交换失败，离开前都清除该对手身上的报价记录。
func (c *GameController) offerTo(ctx context.Context, cand *agent.Agent, offer *game.TradeOffer) (accepted bool, err error) {
	err = c.withActivePlayer(cand, func() error {
		cand.SetTradeOffer(offer)
		defer cand.ClearTradeOffer()

		act, err := c.await(ctx, cand, agent.ObjectiveAcceptTrade)
		if err != nil {
			return err
		}

		switch act.Kind() {
		case agent.KindDeclineTrade:
			if c.monitor != nil {
				c.monitor.TradeRejected()
			}
			return nil
		case agent.KindAcceptTrade:
			if err := c.applyTrade(offer.From, cand.Player(), offer.Offer, offer.Request); err != nil {
				var rejected *RejectedTransferError
				if errors.As(err, &rejected) {
					// 交易作废，继续问下一个候选人
					logger.Log.Infow("trade voided", "error", rejected.Error())
					if c.monitor != nil {
						c.monitor.TradeRejected()
					}
					return nil
				}
				return err
			}
			accepted = true
			if c.monitor != nil {
				c.monitor.TradeAccepted()
			}
			return nil
		default:
			return c.violation(cand, agent.ObjectiveAcceptTrade, act)
		}
	})
	return accepted, err
}

// applyTrade 原子地执行资源交换：报价方付出 offer 换得 request，
// 接受方相反。任何一方拿不出对应资源都判为 RejectedTransferError，
// 双方资源保持不变。
func (c *GameController) applyTrade(offerer, accepter *game.Player, offer, request game.ResourceSet) error {
	if !offerer.HasResources(offer) {
		return &RejectedTransferError{
			Offerer:  offerer,
			Accepter: accepter,
			Cause:    fmt.Errorf("offerer cannot supply offered resources: %w", game.ErrInsufficientResources),
		}
	}
	if !accepter.HasResources(request) {
		return &RejectedTransferError{
			Offerer:  offerer,
			Accepter: accepter,
			Cause:    fmt.Errorf("accepter cannot supply requested resources: %w", game.ErrInsufficientResources),
		}
	}

	// 编排器线程独占修改权，上面的检查到这里仍然有效
	if err := offerer.RemoveResources(offer); err != nil {
		return err
	}
	if err := accepter.RemoveResources(request); err != nil {
		return err
	}
	offerer.AddResources(request)
	accepter.AddResources(offer)

	logger.Log.Infow("trade completed",
		"offerer", offerer.ID,
		"accepter", accepter.ID,
		"offered", offer.Names(),
		"requested", request.Names(),
	)
	return nil
}
