// Package tracking projects order statuses reported by the order service
// onto the storefront's fixed delivery timeline.
package tracking

import (
	"strings"

	"dulce-kart/internal/model"
)

// StepState is how a timeline step is rendered.
type StepState string

const (
	StepComplete StepState = "complete"
	StepActive   StepState = "active"
	StepPending  StepState = "pending"
)

type stageInfo struct {
	label       string
	description string
}

// happyPath is the linear timeline. Cancelled is out of band.
var happyPath = []model.OrderStatus{
	model.OrderStatusPending,
	model.OrderStatusConfirmed,
	model.OrderStatusPreparing,
	model.OrderStatusReady,
	model.OrderStatusDelivered,
}

var stages = map[model.OrderStatus]stageInfo{
	model.OrderStatusPending:   {"Pedido recibido", "Recibimos tu pedido y lo estamos revisando."},
	model.OrderStatusConfirmed: {"Confirmado", "Tu pedido fue confirmado por la pastelería."},
	model.OrderStatusPreparing: {"En preparación", "Estamos horneando y preparando tu pedido."},
	model.OrderStatusReady:     {"Listo para despacho", "Tu pedido está listo y pronto saldrá a reparto."},
	model.OrderStatusDelivered: {"Entregado", "Tu pedido fue entregado. ¡Que lo disfrutes!"},
	model.OrderStatusCancelled: {"Cancelado", "Este pedido fue cancelado."},
}

// Step is one entry of the timeline.
type Step struct {
	Status      model.OrderStatus `json:"status"`
	Label       string            `json:"label"`
	Description string            `json:"description"`
	State       StepState         `json:"state"`

	// Reached is true for every step up to and including the current one.
	Reached bool `json:"reached"`
}

// Badge is the compact status indicator shown in order lists.
type Badge struct {
	Status      model.OrderStatus `json:"status"`
	Label       string            `json:"label"`
	Description string            `json:"description"`
}

// Timeline is the full tracking projection of one status.
type Timeline struct {
	Current   Badge  `json:"current"`
	Steps     []Step `json:"steps"`
	Cancelled bool   `json:"cancelled"`

	// Fallback is set when the reported status was not recognised and the
	// timeline was rendered as pending.
	Fallback bool `json:"fallback,omitempty"`
}

// ResolveStatus maps a raw status onto a known one. Unknown values resolve
// to pending with ok == false.
func ResolveStatus(raw string) (model.OrderStatus, bool) {
	status, err := model.ParseOrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return model.OrderStatusPending, false
	}
	return status, true
}

// BadgeFor returns the badge of a raw status.
func BadgeFor(raw string) Badge {
	status, _ := ResolveStatus(raw)
	return badge(status)
}

func badge(status model.OrderStatus) Badge {
	info := stages[status]
	return Badge{Status: status, Label: info.label, Description: info.description}
}

// BuildTimeline renders the timeline for a raw status. It is a pure function
// of its input.
func BuildTimeline(raw string) Timeline {
	status, known := ResolveStatus(raw)

	tl := Timeline{
		Current:   badge(status),
		Steps:     make([]Step, 0, len(happyPath)),
		Cancelled: status == model.OrderStatusCancelled,
		Fallback:  !known,
	}

	current := -1
	for i, s := range happyPath {
		if s == status {
			current = i
		}
	}

	for i, s := range happyPath {
		info := stages[s]
		step := Step{
			Status:      s,
			Label:       info.label,
			Description: info.description,
			State:       StepPending,
		}
		switch {
		case current < 0:
		case i < current:
			step.State = StepComplete
			step.Reached = true
		case i == current:
			step.State = StepActive
			step.Reached = true
		}
		tl.Steps = append(tl.Steps, step)
	}

	return tl
}
