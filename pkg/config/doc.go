// Package config loads application configuration from a YAML file.
//
// Values may reference environment variables as ${NAME}; they are expanded
// before the document is parsed, so secrets stay out of the file:
//
//	environment: ${APP_ENV}
//	routing:
//	  admin_prefix: /wp-admin
//	  api_prefixes: [/wp-json]
//	middleware:
//	  middleware_groups:
//	    global: [request_id, recover]
//	    api: [timeout:5, db_transaction]
//	  middleware_priority: [recover]
//	route_cache:
//	  dir: var/cache
//	database:
//	  url: ${DATABASE_URL}
//
// Keys absent from the file keep the values of Default.
package config
