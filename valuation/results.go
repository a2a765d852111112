package valuation

import "encoding/json"

// Result document versions. Bump when a stored document's shape changes so
// readers can tell old rows apart.
const (
	dcfResultVersion     = 1
	aiScoreResultVersion = 1
)

// EncodeResult serializes a result document for snapshot storage.
func EncodeResult(result any) (json.RawMessage, error) {
	return json.Marshal(result)
}

// DecodeDCFResult reads a stored DCF document defensively: unknown fields
// are ignored, missing fields keep their zero values, and a nil or empty
// document decodes to an empty result rather than failing.
func DecodeDCFResult(raw json.RawMessage) (DCFResult, error) {
	var result DCFResult
	if len(raw) == 0 {
		return result, nil
	}

	if err := json.Unmarshal(raw, &result); err != nil {
		return DCFResult{}, err
	}

	return result, nil
}

// DecodeAIScoreResult reads a stored score document with the same defensive
// semantics as DecodeDCFResult.
func DecodeAIScoreResult(raw json.RawMessage) (AIScoreResult, error) {
	var result AIScoreResult
	if len(raw) == 0 {
		return result, nil
	}

	if err := json.Unmarshal(raw, &result); err != nil {
		return AIScoreResult{}, err
	}

	return result, nil
}
