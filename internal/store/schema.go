package store

// SchemaSQL contains the hit table schema initialization SQL.
const SchemaSQL = `
    DEFINE TABLE IF NOT EXISTS hit SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS run_id ON hit TYPE string;
    DEFINE FIELD IF NOT EXISTS origin_id ON hit TYPE string;
    DEFINE FIELD IF NOT EXISTS compound_id ON hit TYPE string;
    DEFINE FIELD IF NOT EXISTS compound_name ON hit TYPE string;
    DEFINE FIELD IF NOT EXISTS predicate ON hit TYPE string;
    DEFINE FIELD IF NOT EXISTS object_id ON hit TYPE string;
    DEFINE FIELD IF NOT EXISTS object_name ON hit TYPE string;
    DEFINE FIELD IF NOT EXISTS data_source ON hit TYPE string;
    DEFINE FIELD IF NOT EXISTS search_key ON hit TYPE string;
    DEFINE FIELD IF NOT EXISTS weight ON hit TYPE float;
    DEFINE FIELD IF NOT EXISTS created ON hit TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS hit_origin ON hit FIELDS origin_id;
    DEFINE INDEX IF NOT EXISTS hit_source ON hit FIELDS data_source;
    DEFINE INDEX IF NOT EXISTS hit_search_key ON hit FIELDS search_key;
`
