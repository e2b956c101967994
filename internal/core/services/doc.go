// Package services implements the driving port interfaces.
// Services contain the recommendation and analysis logic and orchestrate
// calls to driven ports (adapters).
//
// Services depend only on port interfaces; storage, scraping, NLP and
// caching are injected at start-up.
package services
