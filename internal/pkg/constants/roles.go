package constants

// Party roles. The market operator runs sessions and settles bids; an
// aggregator admin registers batteries and bids on behalf of its owners.
const (
	MarketOperator  = "market_operator"
	AggregatorAdmin = "aggregator_admin"
	BatteryOwner    = "battery_owner"
)

// PermissionRoles maps each permission to the roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ViewData:         {BatteryOwner, AggregatorAdmin, MarketOperator},
	ConfigureMarket:  {MarketOperator},
	CreateAggregator: {MarketOperator},
	RegisterBattery:  {BatteryOwner, AggregatorAdmin},
	PlaceBid:         {AggregatorAdmin},
	SelectBid:        {MarketOperator},
	SettleBid:        {MarketOperator},
	PayOut:           {MarketOperator},
	ExportStatement:  {AggregatorAdmin, MarketOperator},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
