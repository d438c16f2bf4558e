// Package mongo connects to MongoDB with go.mongodb.org/mongo-driver/v2.
//
// It is the alternative document backend for subscriptions and accounts,
// selected with STORAGE_DRIVER=mongo. New retries the initial connect and
// ping; Healthcheck plugs into the HTTP health endpoint.
package mongo
