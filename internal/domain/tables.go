package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	// Market
	&User{},
	&Item{},
	&Cart{},
	&CartItem{},
	&Order{},
}
