package detect

import "github.com/subwatch/subwatch/internal/models"

// groupByMerchant clusters transactions whose merchant text is
// approximately equal. Greedy single pass: each unassigned transaction
// opens a group and pulls in every later unassigned transaction similar to
// that pivot. Membership is judged against the pivot only, not against
// other members, so groups are not guaranteed mutual cliques and can
// depend on processing order. That asymmetry is part of the contract; see
// Config.TransitiveGrouping for the alternative.
func groupByMerchant(transactions []models.Transaction, cfg Config) [][]models.Transaction {
	var groups [][]models.Transaction
	assigned := make([]bool, len(transactions))

	for i, t := range transactions {
		if assigned[i] {
			continue
		}

		group := []models.Transaction{t}
		assigned[i] = true

		for j := i + 1; j < len(transactions); j++ {
			if assigned[j] {
				continue
			}
			if Similarity(t.Merchant, transactions[j].Merchant) >= cfg.SimilarityThreshold {
				group = append(group, transactions[j])
				assigned[j] = true
			}
		}

		groups = append(groups, group)
	}

	return groups
}

// groupTransitive clusters by transitive closure of the similarity
// relation: anything similar to any existing member joins the group. Opt-in
// via Config.TransitiveGrouping; groups merge more aggressively than the
// pivot scan does.
func groupTransitive(transactions []models.Transaction, cfg Config) [][]models.Transaction {
	var groups [][]models.Transaction
	assigned := make([]bool, len(transactions))

	for i := range transactions {
		if assigned[i] {
			continue
		}

		group := []models.Transaction{transactions[i]}
		assigned[i] = true

		// Frontier scan: every newly added member gets its own pass over
		// the remaining transactions.
		for k := 0; k < len(group); k++ {
			for j := 0; j < len(transactions); j++ {
				if assigned[j] {
					continue
				}
				if Similarity(group[k].Merchant, transactions[j].Merchant) >= cfg.SimilarityThreshold {
					group = append(group, transactions[j])
					assigned[j] = true
				}
			}
		}

		groups = append(groups, group)
	}

	return groups
}
