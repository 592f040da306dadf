// Package artifact loads the trained model and its scalers from the local
// filesystem.
//
// Supported encodings, chosen by file extension:
//   - .json: encoding/json
//   - .yaml, .yml: YAML
package artifact
