package events

// Publisher routes decoded events onto recipient channels. It only ever looks
// channels up: a recipient with no channel yet has no one listening, and the
// event is skipped. Delivery is fire and forget.
type Publisher struct {
	reg *Registry
}

func NewPublisher(reg *Registry) *Publisher {
	return &Publisher{reg: reg}
}

func (p *Publisher) Publish(ev Event, recipients []int64) {
	for _, uid := range recipients {
		if uc, ok := p.reg.Lookup(uid); ok {
			uc.Publish(ev)
		}
	}
}
