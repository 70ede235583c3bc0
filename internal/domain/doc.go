// Package domain models OpenStreetMap point-of-interest data.
//
// # Data Source
//
// POIs originate from the Overpass API (https://overpass-api.de), a read-only
// query service over the OpenStreetMap database. The adapter queries one
// geographic tile at a time and receives a JSON "elements" list, each element
// being an OSM node, way, or relation with a tags mapping.
//
// # OSM Tag Conventions
//
// Classification tags:
//
//	A feature's kind is expressed through key=value tags, most commonly under
//	the tourism, historic, and amenity keys:
//	  tourism=museum, tourism=gallery, tourism=attraction, tourism=viewpoint,
//	  tourism=hotel, tourism=information
//	  historic=monument, historic=memorial, historic=archaeological_site,
//	  historic=yes (a generic "this is historic" marker)
//	  amenity=restaurant, amenity=cafe, amenity=information
//	A single feature frequently carries several of these at once (a museum in
//	a monument building). Classification uses a fixed, ordered decision list;
//	the first matching rule wins. See [CategoryFromTags].
//
// Coordinates:
//
//	Nodes carry lat/lon directly. Ways and relations carry a "center"
//	object when the query requests `out center`. Elements with neither are
//	unmappable and are silently dropped during parsing, not reported as
//	errors.
//
// Names and addresses:
//
//	The name tag is optional in OSM; unnamed features get [PlaceholderName].
//	Addresses use the addr:* namespace. addr:full holds a preformatted
//	address; otherwise one is joined from addr:housenumber, addr:street,
//	addr:city, and addr:postcode in that order. See [AssembleAddress].
//
// # ID Generation
//
// Element identifiers are only unique per element type, so POI IDs combine
// both: "node-240107965", "way-23456", "relation-789". These are stable
// across repeated queries for the same underlying feature, which makes them
// safe keys for cross-tile deduplication.
package domain
