package note

// NewItemSchemaVersion is the tax schema version carried by items of the new item flow.
const NewItemSchemaVersion = 2

// IsNewItemFlow reports whether a list of items uses the new item flow: the
// richer line schema carrying per-line provenance and tax fields. An empty list
// is never new flow. Notes in the legacy flow skip cross-document reconciliation.
func IsNewItemFlow(items []Item) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if item.TaxSchemaVersion < NewItemSchemaVersion {
			return false
		}
	}
	return true
}

// IsNewItemFlowSource applies the same rule to invoice and debit note lines.
func IsNewItemFlowSource(items []SourceItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if item.TaxSchemaVersion < NewItemSchemaVersion {
			return false
		}
	}
	return true
}

// IsNewItemFlowContract applies the same rule to contract lines.
func IsNewItemFlowContract(items []ContractLineItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if item.TaxSchemaVersion < NewItemSchemaVersion {
			return false
		}
	}
	return true
}
