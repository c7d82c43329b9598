package biome

// Def carries the preference ranges, weights and flags scoring one biome.
// Field names mirror the external definition file keys.
type Def struct {
	ID   ID     `json:"-"`
	Name string `json:"name"`

	TreeDensity       float64 `json:"treeDensity"`
	RockDensity       float64 `json:"rockDensity"`
	GrassDensity      float64 `json:"grassDensity"`
	BushDensity       float64 `json:"bushDensity"`
	WaterPlantDensity float64 `json:"waterPlantDensity"`

	MoistureModifier    float64 `json:"moistureModifier"`
	TemperatureModifier float64 `json:"temperatureModifier"`

	PrefMinElevation float64 `json:"prefMinElevation"`
	PrefMaxElevation float64 `json:"prefMaxElevation"`

	PrefSlope      float64 `json:"prefSlope"`
	SlopeTolerance float64 `json:"slopeTolerance"`

	PrefMinMoisture    float64 `json:"prefMinMoisture"`
	PrefMaxMoisture    float64 `json:"prefMaxMoisture"`
	PrefMinTemperature float64 `json:"prefMinTemperature"`
	PrefMaxTemperature float64 `json:"prefMaxTemperature"`

	PrefersCoast          bool `json:"prefersCoast"`
	RequiresWater         bool `json:"requiresWater"`
	RequiresHighElevation bool `json:"requiresHighElevation"`
	PrefersRiver          bool `json:"prefersRiver"`

	WeightElevation   float64 `json:"weightElevation"`
	WeightMoisture    float64 `json:"weightMoisture"`
	WeightTemperature float64 `json:"weightTemperature"`
	WeightSlope       float64 `json:"weightSlope"`
	WeightCoastal     float64 `json:"weightCoastal"`
	WeightRiver       float64 `json:"weightRiver"`
}

// baseDef returns the neutral definition every loaded or built-in record
// starts from.
func baseDef(id ID) Def {
	return Def{
		ID:                  id,
		Name:                id.String(),
		MoistureModifier:    1.0,
		TemperatureModifier: 1.0,
		PrefMinElevation:    0.0,
		PrefMaxElevation:    1.0,
		PrefSlope:           0.0,
		SlopeTolerance:      1.0,
		PrefMinMoisture:     0.0,
		PrefMaxMoisture:     1.0,
		PrefMinTemperature:  0.0,
		PrefMaxTemperature:  1.0,
		WeightElevation:     1.0,
		WeightMoisture:      1.5,
		WeightTemperature:   1.0,
		WeightSlope:         0.7,
		WeightCoastal:       1.2,
		WeightRiver:         1.0,
	}
}

// Defaults returns the built-in biome library. The slice order is the
// scoring tie-break order. Shrubland carries no default definition.
func Defaults() []Def {
	ocean := baseDef(Ocean)
	ocean.RequiresWater = true
	ocean.PrefMaxElevation = 0.35
	ocean.WeightElevation = 2.0
	ocean.WeightMoisture = 0.5
	ocean.WeightTemperature = 0.5

	beach := baseDef(Beach)
	beach.PrefersCoast = true
	beach.PrefMinElevation = 0.35
	beach.PrefMaxElevation = 0.45
	beach.WeightCoastal = 2.0
	beach.WeightElevation = 1.5

	lake := baseDef(Lake)
	lake.RequiresWater = true
	lake.PrefMinElevation = 0.35
	lake.PrefMaxElevation = 0.45
	lake.WeightElevation = 2.0

	mangrove := baseDef(Mangrove)
	mangrove.RequiresWater = true
	mangrove.PrefersCoast = true
	mangrove.PrefMinElevation = 0.35
	mangrove.PrefMaxElevation = 0.45
	mangrove.PrefMinMoisture = 0.7
	mangrove.PrefMaxMoisture = 1.0
	mangrove.WeightCoastal = 2.0
	mangrove.WeightMoisture = 2.0

	desert := baseDef(Desert)
	desert.PrefMinElevation = 0.45
	desert.PrefMaxElevation = 0.8
	desert.PrefMinMoisture = 0.0
	desert.PrefMaxMoisture = 0.3
	desert.PrefMinTemperature = 0.4
	desert.PrefMaxTemperature = 1.0
	desert.WeightMoisture = 2.0
	desert.WeightTemperature = 1.5
	desert.WeightElevation = 1.0

	savanna := baseDef(Savanna)
	savanna.PrefMinElevation = 0.45
	savanna.PrefMaxElevation = 0.7
	savanna.PrefMinMoisture = 0.2
	savanna.PrefMaxMoisture = 0.5
	savanna.PrefMinTemperature = 0.5
	savanna.PrefMaxTemperature = 1.0
	savanna.WeightMoisture = 1.5
	savanna.WeightTemperature = 1.2
	savanna.WeightElevation = 1.0

	grassland := baseDef(Grassland)
	grassland.PrefMinElevation = 0.45
	grassland.PrefMaxElevation = 0.7
	grassland.PrefMinMoisture = 0.3
	grassland.PrefMaxMoisture = 0.7
	grassland.PrefMinTemperature = 0.2
	grassland.PrefMaxTemperature = 0.8
	grassland.WeightMoisture = 1.5
	grassland.WeightTemperature = 1.0
	grassland.WeightElevation = 1.0

	tropical := baseDef(TropicalRainforest)
	tropical.PrefMinElevation = 0.45
	tropical.PrefMaxElevation = 0.8
	tropical.PrefMinMoisture = 0.7
	tropical.PrefMaxMoisture = 1.0
	tropical.PrefMinTemperature = 0.6
	tropical.PrefMaxTemperature = 1.0
	tropical.WeightMoisture = 2.5
	tropical.WeightTemperature = 1.5
	tropical.WeightElevation = 1.0

	seasonal := baseDef(SeasonalForest)
	seasonal.PrefMinElevation = 0.45
	seasonal.PrefMaxElevation = 0.8
	seasonal.PrefMinMoisture = 0.5
	seasonal.PrefMaxMoisture = 1.0
	seasonal.PrefMinTemperature = 0.3
	seasonal.PrefMaxTemperature = 0.9
	seasonal.WeightMoisture = 2.0
	seasonal.WeightTemperature = 1.2
	seasonal.WeightElevation = 1.0

	boreal := baseDef(BorealForest)
	boreal.PrefMinElevation = 0.6
	boreal.PrefMaxElevation = 0.9
	boreal.PrefMinMoisture = 0.4
	boreal.PrefMaxMoisture = 0.8
	boreal.PrefMinTemperature = 0.0
	boreal.PrefMaxTemperature = 0.6
	boreal.WeightMoisture = 1.8
	boreal.WeightTemperature = 1.5
	boreal.WeightElevation = 1.2

	tundra := baseDef(Tundra)
	tundra.PrefMinElevation = 0.7
	tundra.PrefMaxElevation = 0.9
	tundra.PrefMinMoisture = 0.2
	tundra.PrefMaxMoisture = 0.6
	tundra.PrefMinTemperature = 0.0
	tundra.PrefMaxTemperature = 0.4
	tundra.WeightElevation = 1.5
	tundra.WeightTemperature = 2.0
	tundra.WeightMoisture = 1.0

	snow := baseDef(Snow)
	snow.RequiresHighElevation = true
	snow.PrefMinElevation = 0.9
	snow.PrefMaxElevation = 1.0
	snow.PrefMinTemperature = 0.0
	snow.PrefMaxTemperature = 0.3
	snow.WeightElevation = 2.0
	snow.WeightTemperature = 2.0

	rocky := baseDef(Rocky)
	rocky.RequiresHighElevation = true
	rocky.PrefMinElevation = 0.8
	rocky.PrefMaxElevation = 1.0
	rocky.PrefSlope = 0.3
	rocky.SlopeTolerance = 0.5
	rocky.WeightElevation = 2.5
	rocky.WeightSlope = 2.0

	mountain := baseDef(Mountain)
	mountain.RequiresHighElevation = true
	mountain.PrefMinElevation = 0.8
	mountain.PrefMaxElevation = 1.0
	mountain.WeightElevation = 3.0
	mountain.WeightMoisture = 0.5
	mountain.WeightTemperature = 0.8

	swamp := baseDef(Swamp)
	swamp.RequiresWater = true
	swamp.PrefMinElevation = 0.35
	swamp.PrefMaxElevation = 0.5
	swamp.PrefMinMoisture = 0.8
	swamp.PrefMaxMoisture = 1.0
	swamp.PrefMinTemperature = 0.3
	swamp.PrefMaxTemperature = 0.8
	swamp.WeightMoisture = 2.5
	swamp.WeightElevation = 1.5
	swamp.WeightTemperature = 1.0

	return []Def{
		ocean, beach, lake, mangrove, desert, savanna, grassland,
		tropical, seasonal, boreal, tundra, snow, rocky, mountain, swamp,
	}
}
