// Package client sends feature vectors to a resforecast server and returns
// the predicted resource usage.
//
//	c := client.New("http://127.0.0.1:5000", client.WithTimeout(2*time.Second))
//	prediction, err := c.Predict(ctx, []float64{12, 100, 2, 150, 7, 3})
//
// Non-200 answers are returned as *APIError.
package client
