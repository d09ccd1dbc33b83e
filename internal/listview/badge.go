package listview

// Badge is a display label with its tailwind color classes.
type Badge struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Class string `json:"class"`
}

const fallbackClass = "bg-gray-100 text-gray-800"

func colorClass(color string) string {
	return "bg-" + color + "-100 text-" + color + "-800"
}

type badgeDef struct {
	label string
	color string
}

// BadgeMap is a fixed value to badge table. Unknown values render as raw
// text in gray.
type BadgeMap map[string]badgeDef

func (m BadgeMap) For(value string) Badge {
	if d, ok := m[value]; ok {
		return Badge{Value: value, Label: d.label, Class: colorClass(d.color)}
	}
	return Badge{Value: value, Label: value, Class: fallbackClass}
}

var (
	PurchaseStatus = BadgeMap{
		"pending":   {"대기중", "yellow"},
		"approved":  {"승인됨", "green"},
		"rejected":  {"거부됨", "red"},
		"completed": {"완료됨", "blue"},
	}
	ProductionStatus = BadgeMap{
		"planned":     {"계획됨", "blue"},
		"in_progress": {"진행중", "purple"},
		"completed":   {"완료됨", "green"},
		"cancelled":   {"취소됨", "red"},
	}
	ShippingStatus = BadgeMap{
		"planned":    {"계획됨", "blue"},
		"in_transit": {"배송중", "purple"},
		"delivered":  {"배송완료", "green"},
		"delayed":    {"지연", "yellow"},
		"cancelled":  {"취소됨", "red"},
	}
	Role = BadgeMap{
		"admin":   {"관리자", "purple"},
		"manager": {"매니저", "blue"},
		"staff":   {"직원", "green"},
	}
)
