package dto

type DeliveryResponse struct {
	Date        string `json:"date"`
	SenderID    string `json:"sender_id"`
	ClientIndex string `json:"client_index"`
	Quantity    int    `json:"quantity"`
	FeedType    string `json:"feed_type"`
	Price       int    `json:"price"`
	Location    string `json:"location"`
	Notes       string `json:"notes"`
	Reminders   string `json:"reminders"`
}

type ListDeliveriesResponse struct {
	Deliveries []DeliveryResponse `json:"deliveries"`
}
