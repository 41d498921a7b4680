package status

// Статусы заявки на POC
const (
	Draft         = "Draft"
	PendingReview = "Pending Review"
	Approved      = "Approved"
	Active        = "Active"
	Extended      = "Extended"
	Completed     = "Completed"
	Expired       = "Expired"
	Cancelled     = "Cancelled"
)

// Начальный статус новой заявки
const Initial = PendingReview

var all = map[string]bool{
	Draft:         true,
	PendingReview: true,
	Approved:      true,
	Active:        true,
	Extended:      true,
	Completed:     true,
	Expired:       true,
	Cancelled:     true,
}

// Граф допустимых переходов. Completed, Expired и Cancelled - терминальные.
var transitions = map[string][]string{
	Draft:         {Approved, Cancelled},
	PendingReview: {Approved, Cancelled},
	Approved:      {Active, Cancelled},
	Active:        {Extended, Completed, Cancelled, Expired},
	Extended:      {Completed, Cancelled, Expired},
}

// IsValid проверяет, что строка - известный статус
func IsValid(s string) bool {
	return all[s]
}

// IsTerminal - из терминального статуса переходов нет
func IsTerminal(s string) bool {
	return s == Completed || s == Expired || s == Cancelled
}

// CanTransition проверяет переход from -> to по графу
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsApproval - переход, на котором проставляется approved_at
// (только если он еще не проставлен)
func IsApproval(to string) bool {
	return to == Approved || to == Active
}
