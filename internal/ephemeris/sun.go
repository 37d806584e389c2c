package ephemeris

import (
	"math"
	"time"
)

// zenith for sunrise and sunset, including refraction and the solar radius
const officialZenithDeg = 90.833

// SunTimes are the solar events for one UTC day. Sunrise and Sunset are nil
// during polar day or night.
type SunTimes struct {
	Sunrise   *time.Time
	SolarNoon time.Time
	Sunset    *time.Time
}

// Sun computes sunrise, solar noon and sunset for the day starting at
// dayStart (midnight UTC) using the NOAA solar position equations.
func Sun(dayStart time.Time, lat, lon float64) SunTimes {
	decl, eqTime := solarPosition(julianDay(dayStart.Add(12 * time.Hour)))

	noonMinutes := 720 - 4*lon - eqTime
	out := SunTimes{SolarNoon: addMinutes(dayStart, noonMinutes)}

	cosHA := math.Cos(rad(officialZenithDeg))/(math.Cos(rad(lat))*math.Cos(rad(decl))) -
		math.Tan(rad(lat))*math.Tan(rad(decl))
	if cosHA < -1 || cosHA > 1 {
		return out
	}

	ha := deg(math.Acos(cosHA))
	rise := addMinutes(dayStart, noonMinutes-4*ha)
	set := addMinutes(dayStart, noonMinutes+4*ha)
	out.Sunrise = &rise
	out.Sunset = &set
	return out
}

// solarPosition returns the sun's declination in degrees and the equation
// of time in minutes.
func solarPosition(jd float64) (decl, eqTime float64) {
	t := (jd - 2451545) / 36525

	meanLong := math.Mod(280.46646+t*(36000.76983+t*0.0003032), 360)
	meanAnom := 357.52911 + t*(35999.05029-0.0001537*t)
	ecc := 0.016708634 - t*(0.000042037+0.0000001267*t)

	m := rad(meanAnom)
	center := math.Sin(m)*(1.914602-t*(0.004817+0.000014*t)) +
		math.Sin(2*m)*(0.019993-0.000101*t) +
		math.Sin(3*m)*0.000289

	omega := 125.04 - 1934.136*t
	appLong := meanLong + center - 0.00569 - 0.00478*math.Sin(rad(omega))

	meanObliq := 23 + (26+(21.448-t*(46.815+t*(0.00059-t*0.001813)))/60)/60
	obliq := meanObliq + 0.00256*math.Cos(rad(omega))

	decl = deg(math.Asin(math.Sin(rad(obliq)) * math.Sin(rad(appLong))))

	y := math.Pow(math.Tan(rad(obliq/2)), 2)
	l0 := rad(meanLong)
	eqTime = 4 * deg(y*math.Sin(2*l0)-
		2*ecc*math.Sin(m)+
		4*ecc*y*math.Sin(m)*math.Cos(2*l0)-
		0.5*y*y*math.Sin(4*l0)-
		1.25*ecc*ecc*math.Sin(2*m))
	return decl, eqTime
}

func julianDay(t time.Time) float64 {
	return float64(t.Unix())/86400 + 2440587.5
}

func addMinutes(t time.Time, minutes float64) time.Time {
	return t.Add(time.Duration(minutes * float64(time.Minute))).Truncate(time.Second)
}

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }
