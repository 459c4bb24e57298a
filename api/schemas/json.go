package schemas

import jsoniter "github.com/json-iterator/go"

// json is shared by the custom (un)marshalers in this package.
var json = jsoniter.ConfigCompatibleWithStandardLibrary
