package models

// All lists every model in migration order
func All() []interface{} {
	return []interface{}{
		&Make{},
		&CarModel{},
		&Year{},
		&PartType{},
		&SubPart{},
		&Product{},
		&ProductVariant{},
		&Customer{},
		&Address{},
		&Order{},
		&OrderItem{},
		&Payment{},
		&YardInfo{},
		&YardHistory{},
		&ProblematicPart{},
		&ProblematicPartReplacement{},
		&Lead{},
		&WebhookEvent{},
	}
}
