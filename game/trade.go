package game

// TradeOffer 交易提议。同一时刻只对一个被询问的玩家可见，
// 该玩家答复后（无论接受与否）必须清除。
type TradeOffer struct {
	From    *Player
	Offer   ResourceSet
	Request ResourceSet
}
