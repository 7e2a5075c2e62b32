package constants

const (
	ViewData         = "view_data"
	ConfigureMarket  = "configure_market"
	CreateAggregator = "create_aggregator"
	RegisterBattery  = "register_battery"
	PlaceBid         = "place_bid"
	SelectBid        = "select_bid"
	SettleBid        = "settle_bid"
	PayOut           = "pay_out"
	ExportStatement  = "export_statement"
)
