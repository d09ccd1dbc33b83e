package records

import "fmt"

// Kind names the record a form writes. Each kind maps to exactly one table.
type Kind string

const (
	KindInventory  Kind = "inventory"
	KindPurchase   Kind = "purchase"
	KindProduction Kind = "production"
	KindShipping   Kind = "shipping"
	KindUser       Kind = "user"
	KindSiteInfo   Kind = "siteInfo"
	KindCategory   Kind = "category"
	KindEmployee   Kind = "employee"
	KindPriority   Kind = "priority"
	KindStatus     Kind = "status"
)

var kindLabels = map[Kind]string{
	KindInventory:  "재고",
	KindPurchase:   "구매 요청",
	KindProduction: "생산 계획",
	KindShipping:   "배송 계획",
	KindUser:       "사용자",
	KindSiteInfo:   "회사 정보",
	KindCategory:   "카테고리",
	KindEmployee:   "직원",
	KindPriority:   "우선순위",
	KindStatus:     "상태",
}

// Label is the Korean name used in audit descriptions.
func (k Kind) Label() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := kindLabels[k]; !ok {
		return "", fmt.Errorf("unknown record kind %q", s)
	}
	return k, nil
}
