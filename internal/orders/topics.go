package orders

const (
	TopicOrderPlaced         = "order.placed"
	TopicOrderStatusChanged  = "order.status.changed"
	TopicOrderPaymentChanged = "order.payment.changed"
)

var Topics = []string{TopicOrderPlaced, TopicOrderStatusChanged, TopicOrderPaymentChanged}

// Partition key = order_id so events of one order stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
