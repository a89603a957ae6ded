package schema

import (
	"context"

	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

// ProductNode is a product with its subproducts and their tactic types,
// keeping database IDs for the admin UI and the tactic matcher.
type ProductNode struct {
	*storage.Product
	Subproducts []SubproductNode `json:"subproducts"`
}

// SubproductNode is a subproduct with its tactic types.
type SubproductNode struct {
	*storage.Subproduct
	TacticTypes []*storage.TacticType `json:"tactic_types"`
}

// Tree loads the full Product -> Subproduct -> TacticType hierarchy.
func (s *Service) Tree(ctx context.Context) ([]ProductNode, error) {
	products, err := s.store.Products.List(ctx)
	if err != nil {
		return nil, translate(err, "products")
	}

	nodes := make([]ProductNode, 0, len(products))
	for _, p := range products {
		subs, err := s.store.Subproducts.ListByProduct(ctx, p.ID)
		if err != nil {
			return nil, translate(err, "subproducts")
		}
		node := ProductNode{Product: p, Subproducts: make([]SubproductNode, 0, len(subs))}
		for _, sp := range subs {
			tactics, err := s.store.TacticTypes.ListBySubproduct(ctx, sp.ID)
			if err != nil {
				return nil, translate(err, "tactic types")
			}
			if tactics == nil {
				tactics = []*storage.TacticType{}
			}
			node.Subproducts = append(node.Subproducts, SubproductNode{Subproduct: sp, TacticTypes: tactics})
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
