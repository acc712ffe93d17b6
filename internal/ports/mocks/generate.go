//go:generate mockgen -source=../catalog_provider.go       -destination=./mock_catalog_provider.go       -package=mocks
//go:generate mockgen -source=../catalog_cache.go          -destination=./mock_catalog_cache.go          -package=mocks
//go:generate mockgen -source=../snapshot_source.go        -destination=./mock_snapshot_source.go        -package=mocks
//go:generate mockgen -source=../catalog_search_service.go -destination=./mock_catalog_search_service.go -package=mocks
//go:generate mockgen -source=../logger.go                 -destination=./mock_logger.go                 -package=mocks
//go:generate mockgen -source=../validator.go              -destination=./mock_validator.go              -package=mocks
//go:generate mockgen -source=../message_consumer.go       -destination=./mock_message_consumer.go       -package=mocks

package mocks
